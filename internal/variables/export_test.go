package variables

func CachedPatterns() int { return patterns.Len() }
