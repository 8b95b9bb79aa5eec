// Package script runs external recognition and detection programs.
//
// The command backends hand one staged image to a helper program (typically a
// Python script) and read a single JSON document from its standard output.
// A document with an "error" member, a non-zero exit status, empty output or
// output that is not JSON all count as a failed invocation.
//
// Standard error is forwarded to the log unless it only carries warnings.
package script
