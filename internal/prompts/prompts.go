package prompts

// ============================================================================
// Vision Prompts (image description)
// ============================================================================

// DescribeSystemPrompt defines the role for image description. The reply is
// embedded verbatim into the classification payload, so it asks for plain
// description only.
const DescribeSystemPrompt = `You are an image analysis assistant. Describe what the image contains. Reply with a short natural-language description and nothing else. Do not speculate beyond what is visible.`

// DescribeUserPrompt accompanies the encoded image in the user message.
const DescribeUserPrompt = `Describe what the image contains.`

// ============================================================================
// Tag Synthesis Prompt (LLM)
// ============================================================================

// TagSystemPrompt instructs the model to emit a single comma-separated line
// of classification tags. Downstream parsing depends on the single-line rule;
// replies that break it are discarded.
const TagSystemPrompt = `You are a blog post tagging assistant. Given the content of a post, produce between 3 and 10 keywords or short phrases that classify it.

Rules:
- Be confident in your choices and avoid duplicate concepts.
- Keep multi-word phrases as space-separated words. Never concatenate or hyphenate words into a single token.
- Respond with exactly one comma-separated line of tags and nothing else. No numbering, no explanations, no extra lines.`

// TagUserPrefix prefixes the flattened post content in the user message.
const TagUserPrefix = "Post content: "
