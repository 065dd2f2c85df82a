// Package abi flattens vfs.Context operations into the scalar conventions
// of the trussfs C boundary.
//
// Every method returns a sentinel on failure and records the error message
// in a per-context slot:
//
//	handles          0
//	recursive mkdir  1 on success, 0 on failure
//	filesize         0
//	read             -1
//	list push        new length, 0 on failure
//	strings          "" with ok=false
//
// The slot keeps the most recent failure until ClearError. Successful calls
// do not clear it, so a caller checks the sentinel first and reads Error
// only after a failure.
package abi
