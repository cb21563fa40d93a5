// Package core defines the data model of the hazard engine: sites and site
// collections, intensity measure levels, hazard curve accumulators, and the
// seismic source and rupture abstractions the calculators iterate over.
package core
