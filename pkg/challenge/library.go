package challenge

import (
	"strings"

	"github.com/quietmindco/engram/pkg/storage"
)

// Suggestion is one curated challenge from the built-in library. Suggestions
// are templates: starting one goes through Service.Create like any other
// challenge.
type Suggestion struct {
	Category       string             `json:"category"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Difficulty     storage.Difficulty `json:"difficulty"`
	EstimatedHours float64            `json:"estimated_hours"`
	Teaches        []string           `json:"teaches"`
	Prerequisites  []string           `json:"prerequisites"`
}

// Library returns every curated suggestion in category order.
func Library() []Suggestion {
	out := make([]Suggestion, len(library))
	copy(out, library)
	return out
}

// SuggestionsFor returns the curated suggestions for a skill category,
// optionally narrowed to one difficulty. Category matching is
// case-insensitive and tolerates spaces or hyphens for underscores; an
// unknown category returns nothing.
func SuggestionsFor(category string, difficulty storage.Difficulty) []Suggestion {
	want := normalizeCategory(category)

	var out []Suggestion
	for _, s := range library {
		if normalizeCategory(s.Category) != want {
			continue
		}
		if difficulty != "" && s.Difficulty != difficulty {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SearchSuggestions returns suggestions whose title, description, or list of
// taught skills contains the keyword, case-insensitively.
func SearchSuggestions(keyword string) []Suggestion {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}

	var out []Suggestion
	for _, s := range library {
		haystack := strings.ToLower(s.Title + "\n" + s.Description + "\n" + strings.Join(s.Teaches, " "))
		if strings.Contains(haystack, needle) {
			out = append(out, s)
		}
	}
	return out
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	category = strings.ReplaceAll(category, "-", "_")
	return strings.ReplaceAll(category, " ", "_")
}

var library = []Suggestion{
	{
		Category: "python",
		Title:    "CLI Todo App",
		Description: "Build a command-line todo application: add tasks, list them, " +
			"mark them done, delete them, and save/load from a file.",
		Difficulty:     storage.DifficultyBeginner,
		EstimatedHours: 3,
		Teaches:        []string{"functions", "lists", "dictionaries", "file I/O", "user input"},
		Prerequisites:  []string{"basic Python syntax"},
	},
	{
		Category: "python",
		Title:    "Web Scraper with Error Handling",
		Description: "Build a scraper that fetches a page (say, news headlines), " +
			"parses the HTML, handles failures gracefully, and writes the results to CSV.",
		Difficulty:     storage.DifficultyBeginner,
		EstimatedHours: 4,
		Teaches:        []string{"requests", "BeautifulSoup", "exception handling", "CSV"},
		Prerequisites:  []string{"functions", "dictionaries"},
	},
	{
		Category: "python",
		Title:    "Data Validator with Decorators",
		Description: "Create a validation system using decorators: validate function " +
			"inputs, check types and ranges, and support custom validators.",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 4,
		Teaches:        []string{"decorators", "type hints", "validation", "design patterns"},
		Prerequisites:  []string{"functions", "CLI todo app completed"},
	},
	{
		Category: "python",
		Title:    "Simple REST API",
		Description: "Build a REST API with Flask or FastAPI: CRUD endpoints, JSON " +
			"responses, error handling, and basic authentication.",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 5,
		Teaches:        []string{"Flask/FastAPI", "REST", "HTTP", "JSON", "authentication"},
		Prerequisites:  []string{"decorators", "dictionaries"},
	},
	{
		Category: "data_analysis",
		Title:    "Kaggle Dataset Analysis",
		Description: "Pick a Kaggle dataset, explore and clean it, build " +
			"visualizations, find insights, and write up a summary report.",
		Difficulty:     storage.DifficultyBeginner,
		EstimatedHours: 5,
		Teaches:        []string{"pandas", "matplotlib", "data cleaning", "EDA"},
		Prerequisites:  []string{"basic Python"},
	},
	{
		Category: "data_analysis",
		Title:    "Automated Report Generator",
		Description: "Build a system that loads CSV data, runs the analysis, renders " +
			"visualizations, produces a PDF or HTML report, and runs on a schedule.",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 6,
		Teaches:        []string{"automation", "pandas", "reporting", "scheduling"},
		Prerequisites:  []string{"Kaggle analysis completed"},
	},
	{
		Category: "data_analysis",
		Title:    "Time Series Analysis",
		Description: "Analyze temporal data: identify trends and seasonality, build " +
			"forecasts, and visualize the patterns.",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 6,
		Teaches:        []string{"time series", "forecasting", "statistics", "pandas"},
		Prerequisites:  []string{"pandas basics"},
	},
	{
		Category: "machine_learning",
		Title:    "Linear Regression from Scratch",
		Description: "Implement linear regression without scikit-learn: gradient " +
			"descent, a cost function, the training loop, predictions, and plots.",
		Difficulty:     storage.DifficultyBeginner,
		EstimatedHours: 6,
		Teaches:        []string{"gradient descent", "NumPy", "optimization", "ML basics"},
		Prerequisites:  []string{"basic math", "NumPy basics"},
	},
	{
		Category: "machine_learning",
		Title:    "Neural Network from Scratch",
		Description: "Build a neural network without frameworks: forward propagation, " +
			"backpropagation, activation functions, and training on a simple dataset.",
		Difficulty:     storage.DifficultyAdvanced,
		EstimatedHours: 10,
		Teaches:        []string{"neural networks", "backpropagation", "deep learning"},
		Prerequisites:  []string{"linear regression from scratch", "calculus"},
	},
	{
		Category: "machine_learning",
		Title:    "Housing Price Predictor",
		Description: "Build an ML pipeline with scikit-learn: feature engineering, " +
			"model selection, cross-validation, hyperparameter tuning, deployment.",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 8,
		Teaches:        []string{"scikit-learn", "feature engineering", "model selection"},
		Prerequisites:  []string{"pandas", "basic ML concepts"},
	},
	{
		Category: "digitalization",
		Title:    "IoT Data Pipeline",
		Description: "Build an IoT data pipeline: simulate sensor data, process it in " +
			"real time, store it in a database, and put a dashboard on top.",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 8,
		Teaches:        []string{"IoT", "real-time processing", "databases", "MQTT"},
		Prerequisites:  []string{"Python basics", "API experience"},
	},
	{
		Category: "digitalization",
		Title:    "Manufacturing Dashboard",
		Description: "Create a dashboard for factory metrics: real-time KPI " +
			"visualization, historical trends, alerts, and performance analytics.",
		Difficulty:     storage.DifficultyAdvanced,
		EstimatedHours: 10,
		Teaches:        []string{"Plotly/Dash", "real-time viz", "KPIs", "databases"},
		Prerequisites:  []string{"data analysis", "web basics"},
	},
}
