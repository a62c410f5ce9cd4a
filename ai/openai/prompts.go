package openai

// rerankSystemPrompt instructs the rerank model to grade a (query, passage)
// pair. The response must be a bare JSON object so it survives JSON mode.
const rerankSystemPrompt = `You grade how well a documentation passage answers a user query.

Output ONLY valid JSON of the form {"score": <number>} where the number is
between 0.0 and 1.0. Do not include any preamble, explanation, or text
outside the JSON object.

Scoring guide:
- 1.0: the passage directly and completely answers the query.
- 0.7: the passage answers the query but omits details.
- 0.4: the passage is about the same topic but does not answer the query.
- 0.0: the passage is unrelated to the query.`

// hydeSystemPrompt instructs the fast model to produce a hypothetical
// documentation passage for a query. The result is embedded, never shown to
// a user.
const hydeSystemPrompt = `You are a Clearpath documentation assistant. Given a user question, write a
single short, plausible excerpt from product documentation that would
directly answer it (2-4 sentences). Focus on technical terminology and
descriptive details. Write as if it were a real support doc passage. Do NOT
explain that you are an AI. Just provide the paragraph.`
