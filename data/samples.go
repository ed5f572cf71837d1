// Package data holds the built-in sample prompt/reference pairs used
// to populate an empty store on first run. The references double as
// ground truth for automatic scoring of live responses.
package data

import "gemma-chatbot/db"

// DefaultSamples is the seed set inserted by SeedSamplesIfEmpty on
// first start. Prompts must be unique.
var DefaultSamples = []db.SampleEntry{
	{
		Prompt:    "What is a large language model?",
		Reference: "A large language model is a neural network trained on vast amounts of text to predict the next token, which lets it generate and understand natural language.",
	},
	{
		Prompt:    "Explain the difference between supervised and unsupervised learning.",
		Reference: "Supervised learning trains on labeled input output pairs, while unsupervised learning finds structure in unlabeled data such as clusters or latent representations.",
	},
	{
		Prompt:    "What is fine tuning?",
		Reference: "Fine tuning continues training a pretrained model on a smaller task specific dataset so the model adapts to that task while keeping its general knowledge.",
	},
	{
		Prompt:    "How does tokenization work?",
		Reference: "Tokenization splits raw text into smaller units called tokens, such as words or subwords, which the model maps to numeric ids before processing.",
	},
	{
		Prompt:    "What is the attention mechanism?",
		Reference: "Attention lets a model weigh how relevant each input token is to every other token, so the representation of a word depends on its context.",
	},
}
