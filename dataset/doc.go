// Package dataset provides the in-memory tabular data model and file loading.
//
// The dataset package implements the collaborator side of the execution
// engine: it loads delimited text files into immutable in-memory tables,
// detects file encodings, infers descriptive column types, and produces
// file and column metadata for callers. The Table type is the opaque
// dataset handle passed to the script engine; it supports column
// enumeration, row counts, and read access.
//
// Usage:
//
//	table, info, err := dataset.LoadCSV("data.csv", dataset.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(table.Columns(), table.NumRows(), info.Encoding)
package dataset
