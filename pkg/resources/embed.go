package resources

import "embed"

// FixtureDir is the directory inside Fixtures holding one <resource>.json
// array per collection.
const FixtureDir = "fixtures"

// Fixtures holds the seed data compiled into the binary.
//
//go:embed fixtures/*.json
var Fixtures embed.FS
