package apierr

// Code is the machine-readable error code sent in the envelope.
type Code string

const (
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeInvalidSecret         Code = "INVALID_SECRET"
	CodeMissingCMSConfig      Code = "MISSING_SANITY_CONFIG"
	CodeMissingAIKey          Code = "MISSING_GEMINI_KEY"
	CodeGenerationDisabled    Code = "GENERATION_NOT_CONFIGURED"
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeInvalidRequestData    Code = "INVALID_REQUEST_DATA"
	CodePostNotFound          Code = "BLOG_POST_NOT_FOUND"
	CodeMissingRequiredFields Code = "MISSING_REQUIRED_FIELDS"
	CodeAIGenerationFailed    Code = "AI_GENERATION_FAILED"
	CodeAIJSONParse           Code = "AI_JSON_PARSE_ERROR"
	CodeAIBodyExtraction      Code = "AI_BODY_EXTRACTION_ERROR"
	CodeFetchFailed           Code = "FETCH_FAILED"
	CodeServerError           Code = "SERVER_ERROR"
	CodeRateLimitExceeded     Code = "RATE_LIMIT_EXCEEDED"
	CodeUnknown               Code = "UNKNOWN_ERROR"
)

type messagePair struct {
	dev  string
	prod string
}

var messages = map[Code]messagePair{
	CodeUnauthorized: {
		dev:  "Unauthorized: invalid or missing authorization token. Provide a valid Bearer token.",
		prod: "Access denied. Please check your credentials and try again.",
	},
	CodeInvalidSecret: {
		dev:  "Invalid secret token provided. Expected format: Bearer <token>",
		prod: "Invalid authentication token. Please try again.",
	},
	CodeMissingCMSConfig: {
		dev:  "CMS configuration is incomplete. Required: SANITY_API_TOKEN, SANITY_PROJECT_ID, SANITY_DATASET",
		prod: "Service configuration error. Please contact support.",
	},
	CodeMissingAIKey: {
		dev:  "AI provider API key is not set (GEMINI_API_KEY or OPENAI_API_KEY). Cannot generate content.",
		prod: "AI service is not configured. Please contact support.",
	},
	CodeGenerationDisabled: {
		dev:  "BLOG_GENERATION_SECRET is not set. The generate endpoint is disabled.",
		prod: "Blog generation is not configured.",
	},
	CodeValidation: {
		dev:  "Request validation failed. See details for the offending fields.",
		prod: "Invalid request data. Please check your input and try again.",
	},
	CodeInvalidRequestData: {
		dev:  "Request data validation failed. Check the request payload format.",
		prod: "Invalid request data. Please check your input and try again.",
	},
	CodePostNotFound: {
		dev:  "Blog post with the specified slug does not exist.",
		prod: "The requested blog post could not be found.",
	},
	CodeMissingRequiredFields: {
		dev:  "AI response is missing required fields (title, body, or summary).",
		prod: "Failed to generate complete content. Please try again.",
	},
	CodeAIGenerationFailed: {
		dev:  "The AI provider request failed or returned an empty response.",
		prod: "Content generation failed. Please try again.",
	},
	CodeAIJSONParse: {
		dev:  "Could not extract or parse JSON from AI response. Response may be malformed.",
		prod: "Failed to process generated content. Please try again.",
	},
	CodeAIBodyExtraction: {
		dev:  "Could not find the end of body string in AI response.",
		prod: "Content generation incomplete. Please try again.",
	},
	CodeFetchFailed: {
		dev:  "CMS request failed. Check the CMS configuration and availability.",
		prod: "Failed to load data. Please check your connection and try again.",
	},
	CodeServerError: {
		dev:  "Internal server error occurred. Check server logs for details.",
		prod: "An error occurred while processing your request. Please try again later.",
	},
	CodeRateLimitExceeded: {
		dev:  "Rate limit exceeded. Too many requests from this client.",
		prod: "Too many requests. Please wait a moment and try again.",
	},
	CodeUnknown: {
		dev:  "An unexpected error occurred. Check the error details for more information.",
		prod: "Something went wrong. Please try again later.",
	},
}

// Message returns the client-facing text for the code.
func (c Code) Message(development bool) string {
	pair, ok := messages[c]
	if !ok {
		pair = messages[CodeUnknown]
	}
	if development {
		return pair.dev
	}
	return pair.prod
}
