package analyzer

const imageSystemPrompt = "You are an image analysis assistant."

const imageUserPrompt = `Analyze the uploaded image and respond ONLY in valid JSON format, with the following schema:

{
  "city": string | null,
  "region": string | null,
  "country": string | null,
  "landmark": string | null,
  "weather": string | null,
  "category": string,
  "caption": string | null,
  "confidence": float | null,
  "justification": string | null
}

Rules:
- category is one of architecture, nature, food, people, document or other.
- caption is a brief description of the image.
- confidence is a score between 0 and 1.
- If you are at least 51% confident, include your best guess.
- For landmark, include the most likely famous building or place name if visible.
- justification names the visual clues behind the location guess.
- If a field cannot be inferred, use null.
- Return only JSON, no explanation.`

const summarySystemPrompt = "You are a document assistant that outputs only strict JSON."

const summaryUserPrompt = `Summarize this text and output valid JSON in this format:
{
    "caption": "string",
    "summary": "string",
    "highlights": ["string"],
    "keywords": ["string"],
    "sentiment": "positive|neutral|negative"
}
Rules:
- caption should be one sentence describing the overall topic of the text.
- summary should be 2-3 sentences summarizing the main points.`
