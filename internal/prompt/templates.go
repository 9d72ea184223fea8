package prompt

// Template ids. Each id is also a call site with its own context budget.
const (
	Concepts    = "concepts"
	Explanation = "explanation"
	Scenario    = "scenario"
	Evaluation  = "evaluation"
	Quiz        = "quiz"
	Simulation  = "simulation"
)

const conceptsTemplate = `Read the following textbook text and identify the main learning concepts.
Return ONLY a JSON list of strings, one short concept name per entry, in the order they appear.
Text: "{{.Context}}"`

const explanationTemplate = `Act as an expert science teacher. For the concept "{{.Concept}}", write a detailed explanation for a 10th-grade student.
- Use headings, bold text, and bullet points to structure the content.
- Break the explanation into multiple paragraphs.
- Integrate 2-3 simple Mermaid.js flowcharts (graph TD) directly within the explanation.
  - Each diagram must be enclosed in ` + "```mermaid ... ```" + ` blocks.
  - Place them at logical points where a visual would be most helpful.

Context: "{{.Context}}"`

const scenarioTemplate = `Based on the concept of "{{.Concept}}", create a short, practical, real-world scenario problem for a 10th-grade student.
The scenario should end with a question that requires the student to apply their knowledge.
For example, for "Relative Motion", a scenario could be: "Sarah is sitting on a moving bus while you wait at the bus stop. Describe Sarah's state (at rest or in motion) from your perspective and from the perspective of a passenger sitting opposite her, stating the reference point used for each observation."
Return only the scenario and the question.

Context: "{{.Context}}"`

const evaluationTemplate = `A student was given the following scenario:
---
{{.Scenario}}
---
The student provided this answer:
---
{{.Answer}}
---
Based on the correct scientific principles from the context below, evaluate the student's answer.
- Start with "### Feedback:"
- Clearly state if their reasoning is correct, partially correct, or incorrect.
- Provide a simple, encouraging explanation of the correct answer and why.
- Use markdown for formatting.

Correct Context: "{{.Context}}"`

const quizTemplate = `Based on the following educational text, create a JSON object for a quiz.
The JSON object must have one key: "questions".
The value should be a list of {{.QuestionCount}} multiple-choice question objects.
Each question object must have three keys:
1. "question_text": The question itself.
2. "options": A list of {{.OptionCount}} distinct strings, where one is the correct answer.
3. "correct_answer": The correct answer, copied character for character from the "options" list.
Respond with the JSON object only.

Educational Text:
"{{.Context}}"`

const simulationTemplate = `Act as an expert JavaScript developer. Your task is to write only the JavaScript code that goes inside the <script> tag of an HTML file to create an interactive simulation.
- The simulation must be for the concept: "{{.Concept}}".
- It must run on the HTML canvas element with the id 'simulationCanvas'.
- If you need interactive controls like sliders or buttons, generate the HTML for them and use JavaScript to insert them into the 'simulationControls' div.
- The code must be self-contained and not require any external libraries.
- Add comments to explain the logic.
- Make it interactive (e.g., draggable objects, sliders to change values).
- Do not include the <script> tags or any other HTML in your response. Output only the raw JavaScript code.

Here is some context for the concept:
"{{.Context}}"`

var builtinTemplates = map[string]string{
	Concepts:    conceptsTemplate,
	Explanation: explanationTemplate,
	Scenario:    scenarioTemplate,
	Evaluation:  evaluationTemplate,
	Quiz:        quizTemplate,
	Simulation:  simulationTemplate,
}
