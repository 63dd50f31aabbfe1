package utils

// Version is the current version of the agency.
var Version = "0.9.2"
