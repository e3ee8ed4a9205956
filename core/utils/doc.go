// Package utils provides common utility functions for the IXP tracker.
// It includes tolerant conversions for loosely typed registry values and the
// month arithmetic shared by the importer and the stats generator.
package utils
