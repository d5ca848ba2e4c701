package config

type (
	//TableCfg is the container for the MongoDB collection names
	TableCfg struct {
		Log       LogTableCfg
		Reports   ReportsTableCfg
		Blacklist BlacklistTableCfg
	}

	//LogTableCfg contains the configuration for logging
	LogTableCfg struct {
		LogTable string `default:"logs"`
	}

	//ReportsTableCfg names the collection mirrored reports are written to
	ReportsTableCfg struct {
		ReportTable string `default:"reports"`
	}

	//BlacklistTableCfg names the rita-bl collections consulted by the
	//blacklist source
	BlacklistTableCfg struct {
		IPTable string `default:"ip"`
	}
)
