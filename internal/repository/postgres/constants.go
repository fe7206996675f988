package postgres

const (
	// DefaultSchema - схема сервиса карты
	DefaultSchema = "rg_service_map"

	// TitleTable - таблица участков земельного реестра
	TitleTable = "land_registry_title"

	// DriverName - метка драйвера в метриках
	DriverName = "postgres"
)
