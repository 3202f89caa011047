// Package domain models the Lisbon road accident dataset and the pure
// functions that enrich, filter and aggregate it.
//
// # Data Source
//
// Records come from a static CSV export of police-reported road accidents in
// the municipality of Lisbon (2023). One row is one accident. The file is
// read once per modification time and never written back.
//
// # Raw Columns
//
//	id                accident identifier, kept verbatim
//	date              calendar date, "2023-01-05" (a time part is tolerated)
//	hour              hour of day, 0–23
//	latitude          WGS-84 decimal degrees
//	longitude         WGS-84 decimal degrees
//	parish            freguesia, e.g. "Arroios"
//	road_type         e.g. "Avenue", "Street", "Roundabout"
//	accident_type     e.g. "Collision", "Run-off", "Pedestrian"
//	weather           e.g. "Clear", "Rain", "Fog"
//	num_vehicles      vehicles involved
//	injuries_light    light injuries
//	injuries_serious  serious injuries
//	fatalities_30d    deaths within 30 days of the accident
//	day_of_week       English weekday name, "Monday" … "Sunday"
//
// # Derived Columns
//
// Severity uses the highest casualty tier present, so a record is counted in
// exactly one tier:
//
//	fatalities_30d > 0    Fatal
//	injuries_serious > 0  Serious
//	injuries_light > 0    Light
//	otherwise             Property Damage Only
//
// Time period buckets the hour with half-open ranges:
//
//	[6,12)  Morning
//	[12,18) Afternoon
//	[18,22) Evening
//	other   Night
//
// Total casualties is the sum of the three casualty columns. Month and month
// name come from the date.
//
// # Filtering
//
// A [Filter] ANDs its dimensions and ORs the values accepted within one
// dimension. A nil value set leaves its dimension unconstrained; a non-nil
// empty set accepts nothing. See [BuildView].
package domain
