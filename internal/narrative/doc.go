// Package narrative turns analysis results into report prose.
//
// Every non-empty analysis becomes a prompt that embeds its sub-tables as CSV
// text. The sub-prompts are sent to a Model concurrently, bounded by the
// configured concurrency and a shared rate limiter. Their answers are then
// joined under fixed labels into the master prompt, whose answer is the
// report's qualitative section.
//
// Example usage:
//
//	model, err := narrative.NewModel(ctx, cfg.Narrative)
//	composer := narrative.NewComposer(model, narrative.WithConcurrency(3))
//	story, err := composer.Compose(ctx, results)
package narrative
