package classify

import "github.com/hupe1980/intentmesh/core"

// Built-in trigger vocabularies.
var (
	MathTriggers = []string{
		"add", "subtract", "multiply", "divide", "calculate", "compute", "times", "plus",
		"minus", "divided by", "multiplied by", "equals", "sum", "difference", "product", "quotient",
	}
	// MathPatterns catch bare arithmetic such as "10 - 5" or "3*4".
	MathPatterns = []string{`\d\s*[-+*/×÷]\s*\d`}

	WeatherTriggers = []string{
		"weather", "temperature", "temp", "climate", "forecast", "hot", "cold", "sunny", "rainy", "cloudy",
	}

	DateTimeTriggers = []string{
		"date", "day", "weekday", "month", "year", "what time", "current time", "time is it",
	}

	ResearchTriggers = []string{
		"search", "look up", "research", "who is", "who was", "tell me about", "find information",
	}
)

// DefaultRules returns the built-in rules for the math, weather, datetime
// and research domains in that order. Locations are resolved against g.
func DefaultRules(g Gazetteer) []Rule {
	return []Rule{
		{Domain: core.DomainMath, Triggers: MathTriggers, Patterns: MathPatterns, Extract: ArithmeticExtractor},
		{Domain: core.DomainWeather, Triggers: WeatherTriggers, Extract: LocationExtractor(g)},
		{Domain: core.DomainDateTime, Triggers: DateTimeTriggers, Extract: DateTimeExtractor},
		{Domain: core.DomainResearch, Triggers: ResearchTriggers},
	}
}
