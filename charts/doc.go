// Package charts renders interactive Chart.js visualizations.
//
// The charts package turns tabular result data into self-contained HTML
// documents backed by the Chart.js library. Rendering is feature-flagged
// through configuration and writes one file per chart into a configured
// output directory.
//
// Usage:
//
//	renderer := charts.New(cfg, logger)
//	path, err := renderer.Generate(data, "bar", "Monthly Sales")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("chart written to", path)
package charts
