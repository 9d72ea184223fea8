package service

import (
	"html"
	"strings"

	"lesson-byte/internal/domain"
)

const simulationPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Interactive Simulation</title>
    <style>
        body { font-family: sans-serif; display: flex; flex-direction: column; align-items: center; margin: 0; background-color: #f0f0f0; }
        #simulationCanvas { border: 1px solid #ccc; background-color: #fff; }
        .controls { margin-top: 10px; padding: 0 10px; }
        label { margin: 0 10px; }
    </style>
</head>
<body>
    <h4>{{TITLE}} Simulation</h4>
    <canvas id="simulationCanvas" width="700" height="400"></canvas>
    <div class="controls" id="simulationControls"></div>
    <script>
{{SCRIPT}}
    </script>
</body>
</html>
`

// RenderSimulationPage injects code into the canvas page. The title is HTML
// escaped and a closing script tag inside code is neutralised.
func RenderSimulationPage(concept domain.Concept, code string) string {
	code = strings.ReplaceAll(code, "</script", `<\/script`)
	return strings.NewReplacer(
		"{{TITLE}}", html.EscapeString(string(concept)),
		"{{SCRIPT}}", code,
	).Replace(simulationPage)
}
