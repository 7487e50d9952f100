package llm

import "fmt"

// ValidateOptions returns a human-readable list of problems with opts.
// An empty list means the options are usable.
func ValidateOptions(opts ClientOptions) []string {
	var problems []string

	if opts.APIKey == "" {
		problems = append(problems, "API key is required")
	}
	if opts.DefaultModel == "" {
		problems = append(problems, "model is required")
	}
	if opts.BaseURL == "" {
		problems = append(problems, "base URL is required")
	}
	if opts.Temperature < 0 || opts.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("temperature must be between 0 and 2, got %v", opts.Temperature))
	}
	if opts.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("max tokens must be greater than 0, got %d", opts.MaxTokens))
	}

	return problems
}
