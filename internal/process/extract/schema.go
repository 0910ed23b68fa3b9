package extract

// factCardsSchema constrains the extraction model's response. The same
// schema is compiled locally to validate each returned card before it
// enters ranking; the model occasionally violates its own response
// format and a bad card must never poison the brief.
const factCardsSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["cards"],
  "properties": {
    "cards": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["story_id", "entity", "trend", "data_point", "why_it_matters", "confidence", "tickers", "sources", "urls"],
        "properties": {
          "story_id": {"type": "string", "minLength": 1},
          "entity": {"type": "string", "minLength": 1},
          "trend": {"type": "string", "minLength": 1},
          "data_point": {"type": "string"},
          "why_it_matters": {"type": "string", "maxLength": 200},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "tickers": {"type": "array", "items": {"type": "string"}},
          "sources": {"type": "array", "items": {"type": "string"}, "minItems": 1},
          "urls": {"type": "array", "items": {"type": "string"}, "minItems": 1}
        }
      }
    }
  }
}`
