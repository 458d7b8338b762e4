package ai

// Instruction templates for the market mapper prompt modes. Collaborator data
// is appended as a RESEARCH CONTEXT block by the builder; each mode selects a
// different subset of it.

const systemContext = `You are a market research analyst. You evaluate business ideas
against competitor, market, sentiment and web intelligence data.
Respond with a single valid JSON object and nothing else.`

const discoveryTemplate = `Analyze this business idea and map its competitive landscape.

BUSINESS IDEA: %s
INDUSTRY: %s

Produce a JSON object with fields:
"summary" (string), "competitors" (array of {"name","segment","similarity"}),
"confidence_score" (number 0-1), "recommendations" (array of strings).
Segments must be one of "direct", "indirect", "substitute".`

const questionsTemplate = `You are gathering missing information about a business idea.

BUSINESS IDEA: %s
INDUSTRY: %s

ALREADY ANSWERED (do not ask about these again): %s

Produce a JSON object with fields:
"summary" (string), "questions" (array of {"key","text"}), "competitors" (array, may be empty),
"confidence_score" (number 0-1).
Question keys must be snake_case identifiers for the missing topic.
Never emit a question whose key appears in the answered list.`

const deepAnalysisTemplate = `Perform a deep analysis of this business idea using all research signals.

BUSINESS IDEA: %s
INDUSTRY: %s

KNOWN ANSWERS:
%s

Produce a JSON object with fields:
"summary" (string), "competitors" (array of {"name","segment","similarity"}),
"market" (object with "tam","sam","som","growth_rate"),
"confidence_score" (number 0-1), "recommendations" (array of strings).`

const strategyTemplate = `Recommend a market entry strategy for this business idea.

BUSINESS IDEA: %s
INDUSTRY: %s

KNOWN ANSWERS:
%s

Produce a JSON object with fields:
"summary" (string), "competitors" (array of {"name","segment","similarity"}),
"confidence_score" (number 0-1), "recommendations" (array of strings, ordered by priority).`

const validationTemplate = `Validate whether this business idea should proceed, citing the evidence.

BUSINESS IDEA: %s
INDUSTRY: %s

KNOWN ANSWERS:
%s

Produce a JSON object with fields:
"summary" (string with a clear go/no-go call), "competitors" (array of {"name","segment","similarity"}),
"confidence_score" (number 0-1), "recommendations" (array of strings).`
