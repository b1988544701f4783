// Package output encodes generated instances.
//
// Stream formats (JSON, NDJSON, YAML and XML) are written with Write or,
// atomically, with WriteFile. SQLite output needs a database path and goes
// through WriteFile or WriteSQLite. PublishMQTT sends each instance to an
// MQTT broker as a JSON message.
//
//	items, _ := generator.Generate(reg, "User", 10, generator.WithSeed(42))
//	err := output.WriteFile(ctx, "users.ndjson", output.FormatUnknown, "User", items)
package output
