package topics

import "math/rand/v2"

// Default is the built-in 20-day "Python + AI" curriculum.
var Default = []string{
	"Python setup, REPL and virtual environments",
	"Variables, types and control flow",
	"Functions, modules and packages",
	"Lists, tuples, dicts and sets",
	"Comprehensions, iterators and generators",
	"Files, JSON and error handling",
	"Classes, dataclasses and typing",
	"Testing with pytest",
	"NumPy fundamentals",
	"Data wrangling with pandas",
	"Plotting with matplotlib",
	"Statistics and probability refresher",
	"Machine learning workflow with scikit-learn",
	"Regression and classification models",
	"Model evaluation and cross-validation",
	"Neural network basics",
	"Deep learning with PyTorch",
	"Working with text and embeddings",
	"Calling LLM APIs and prompt design",
	"Capstone: build and ship a small AI app",
}

// Quotes are shown next to today's topic.
var Quotes = []string{
	"Small steps every day add up to big results.",
	"You don't have to be great to start, but you have to start to be great.",
	"Consistency beats intensity.",
	"The expert in anything was once a beginner.",
	"Learning never exhausts the mind.",
	"Done is better than perfect.",
	"Every bug you fix makes you a better programmer.",
	"Focus on progress, not perfection.",
}

// PickQuote returns a quote chosen deterministically from seed. The same
// seed always yields the same quote for the same list.
func PickQuote(quotes []string, seed uint64) string {
	if len(quotes) == 0 {
		return ""
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return quotes[r.IntN(len(quotes))]
}
