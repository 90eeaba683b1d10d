package main

import (
	"cardarb-backend/cmd/cardarb/commands"
	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.SetupFromEnv(ctx, "cardarb")
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
