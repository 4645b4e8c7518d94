// Package resources declares the twelve collections served by mockrest and
// embeds their seed fixtures.
//
// Every collection shares the same store, query pipeline and validators;
// a Definition only supplies configuration: field rules, list filters,
// searchable fields, default page size, foreign keys, nested routes and
// server-side defaults.
package resources
