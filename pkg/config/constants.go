package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv  = "A33_APP_ENV"
	EnvAppPort = "A33_APP_PORT"

	EnvDBDriver      = "A33_DB_DRIVER"
	EnvDBDSN         = "A33_DB_DSN"
	EnvDBOpenTimeout = "A33_DB_OPEN_TIMEOUT"

	EnvRedisURL = "A33_REDIS_URL"

	EnvDashboardScanLimit    = "A33_DASHBOARD_SCAN_LIMIT"
	EnvDashboardWorkers      = "A33_DASHBOARD_WORKERS"
	EnvDashboardQueueCap     = "A33_DASHBOARD_QUEUE_CAP"
	EnvDashboardActiveCap    = "A33_DASHBOARD_ACTIVE_CAP"
	EnvDashboardActiveWindow = "A33_DASHBOARD_ACTIVE_WINDOW"
)
