package charts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
)

// Dataset is one numeric series rendered on the chart.
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"-"`
}

// Page holds everything the HTML template needs.
type Page struct {
	Title    string
	Type     string
	Labels   []string
	Datasets []Dataset
}

// Default Chart.js color palette, cycled across datasets and pie slices.
var palette = []string{
	"rgba(54, 162, 235, 0.7)",
	"rgba(255, 99, 132, 0.7)",
	"rgba(255, 206, 86, 0.7)",
	"rgba(75, 192, 192, 0.7)",
	"rgba(153, 102, 255, 0.7)",
	"rgba(255, 159, 64, 0.7)",
}

// buildPage splits column-oriented data into labels and numeric datasets.
// Columns are visited in sorted name order so output is deterministic.
func buildPage(data map[string][]any, chartType, title string) (*Page, error) {
	if len(data) == 0 {
		return nil, ErrNoData
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := len(data[names[0]])
	for _, name := range names {
		if len(data[name]) != rows {
			return nil, ErrRaggedColumns
		}
	}

	page := &Page{Title: title, Type: chartType}
	for _, name := range names {
		values, ok := numericColumn(data[name])
		if !ok {
			// First non-numeric column supplies the axis labels.
			if page.Labels == nil {
				page.Labels = stringColumn(data[name])
			}
			continue
		}
		page.Datasets = append(page.Datasets, Dataset{
			Label:  name,
			Data:   values,
			Colors: datasetColors(len(page.Datasets), chartType, rows),
		})
	}

	if len(page.Datasets) == 0 {
		return nil, ErrNoNumericData
	}
	if chartType == TypePie {
		page.Datasets = page.Datasets[:1]
	}
	if page.Labels == nil {
		page.Labels = indexLabels(rows)
	}

	return page, nil
}

// numericColumn converts a column to float64 values, reporting false when
// any non-null cell is not a number.
func numericColumn(cells []any) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		switch v := cell.(type) {
		case nil:
			values[i] = 0
		case float64:
			values[i] = v
		case float32:
			values[i] = float64(v)
		case int:
			values[i] = float64(v)
		case int64:
			values[i] = float64(v)
		default:
			return nil, false
		}
	}
	return values, true
}

func stringColumn(cells []any) []string {
	labels := make([]string, len(cells))
	for i, cell := range cells {
		if cell == nil {
			labels[i] = ""
			continue
		}
		labels[i] = fmt.Sprintf("%v", cell)
	}
	return labels
}

func indexLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}
	return labels
}

// datasetColors assigns one palette color per dataset, except pie charts
// where each slice gets its own color.
func datasetColors(datasetIndex int, chartType string, rows int) []string {
	if chartType == TypePie {
		colors := make([]string, rows)
		for i := range colors {
			colors[i] = palette[i%len(palette)]
		}
		return colors
	}
	return []string{palette[datasetIndex%len(palette)]}
}

var pageTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
body { font-family: sans-serif; margin: 2em; }
.chart-container { max-width: 900px; margin: 0 auto; }
</style>
</head>
<body>
<div class="chart-container">
<h2>{{.Title}}</h2>
<canvas id="chart"></canvas>
</div>
<script>
new Chart(document.getElementById("chart"), {
  type: {{.TypeJSON}},
  data: {
    labels: {{.LabelsJSON}},
    datasets: {{.DatasetsJSON}}
  },
  options: {
    responsive: true,
    plugins: { legend: { position: "top" } }
  }
});
</script>
</body>
</html>
`))

// chartDataset is the Chart.js wire shape for one dataset.
type chartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// templateData wraps a Page with pre-marshaled JSON for the script block.
type templateData struct {
	Title        string
	TypeJSON     template.JS
	LabelsJSON   template.JS
	DatasetsJSON template.JS
}

func renderPage(page *Page) ([]byte, error) {
	datasets := make([]chartDataset, len(page.Datasets))
	for i, ds := range page.Datasets {
		datasets[i] = chartDataset{
			Label:           ds.Label,
			Data:            ds.Data,
			BackgroundColor: ds.Colors,
			BorderWidth:     1,
		}
	}

	typeJSON, err := json.Marshal(page.Type)
	if err != nil {
		return nil, err
	}
	labelsJSON, err := json.Marshal(page.Labels)
	if err != nil {
		return nil, err
	}
	datasetsJSON, err := json.Marshal(datasets)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, templateData{
		Title:        page.Title,
		TypeJSON:     template.JS(typeJSON),
		LabelsJSON:   template.JS(labelsJSON),
		DatasetsJSON: template.JS(datasetsJSON),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
