package config

// MergeConfig merges source config into target, updating sources tracking.
// A value is applied when its key is in source.SetFields; configs built
// programmatically (nil SetFields) apply their non-zero values.
func MergeConfig(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}
	set := func(key string, nonZero bool) bool {
		ok := nonZero
		if source.SetFields != nil {
			ok = source.SetFields[key]
		}
		if ok {
			target.Sources[key] = sourceType
		}
		return ok
	}

	if set(KeyLocale, source.Locale != "") {
		target.Locale = source.Locale
	}
	if set(KeySeed, source.Seed != 0) {
		target.Seed = source.Seed
	}
	if set(KeyCount, source.Count != 0) {
		target.Count = source.Count
	}
	if set(KeyFormat, source.Format != "") {
		target.Format = source.Format
	}
	if set(KeyExampleProbability, source.ExampleProbability != 0) {
		target.ExampleProbability = source.ExampleProbability
	}
	if set(KeyCollectionMin, source.Collection.Min != 0) {
		target.Collection.Min = source.Collection.Min
	}
	if set(KeyCollectionMax, source.Collection.Max != 0) {
		target.Collection.Max = source.Collection.Max
	}
	if set(KeyMaxDepth, source.MaxDepth != 0) {
		target.MaxDepth = source.MaxDepth
	}
	if set(KeyAnchor, source.Anchor != "") {
		target.Anchor = source.Anchor
	}

	if set(KeyHost, source.Server.Host != "") {
		target.Server.Host = source.Server.Host
	}
	if set(KeyPort, source.Server.Port != 0) {
		target.Server.Port = source.Server.Port
	}
	if set(KeyServerCount, source.Server.Count != 0) {
		target.Server.Count = source.Server.Count
	}
	if set(KeyMaxConnections, source.Server.MaxConnections != 0) {
		target.Server.MaxConnections = source.Server.MaxConnections
	}
	if set(KeyReadTimeout, source.Server.ReadTimeout != 0) {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if set(KeyWriteTimeout, source.Server.WriteTimeout != 0) {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if set(KeyFreshCreateSessions, source.Server.FreshCreateSessions) {
		target.Server.FreshCreateSessions = source.Server.FreshCreateSessions
	}

	if set(KeyLogLevel, source.Log.Level != "") {
		target.Log.Level = source.Log.Level
	}
	if set(KeyLogFormat, source.Log.Format != "") {
		target.Log.Format = source.Log.Format
	}
}
