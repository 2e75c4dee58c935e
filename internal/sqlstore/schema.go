package sqlstore

// Table names. They match the schema already deployed for earlier scraper
// runs.
const (
	TableCases        = "expedientes"
	TableMovements    = "movimientos"
	TableParticipants = "participantes"
)

// MySQL DDL.
const (
	mysqlCreateCases = `CREATE TABLE IF NOT EXISTS expedientes (
    id INT AUTO_INCREMENT PRIMARY KEY,
    expediente VARCHAR(255) NOT NULL,
    jurisdiccion VARCHAR(255) NOT NULL,
    dependencia VARCHAR(255) NOT NULL,
    situacion_actual VARCHAR(255),
    caratula TEXT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	mysqlCreateMovements = `CREATE TABLE IF NOT EXISTS movimientos (
    id INT AUTO_INCREMENT PRIMARY KEY,
    expediente_id INT NOT NULL,
    fecha DATE NULL,
    tipo VARCHAR(255),
    detalle TEXT,
    FOREIGN KEY (expediente_id) REFERENCES expedientes(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	mysqlCreateParticipants = `CREATE TABLE IF NOT EXISTS participantes (
    id INT AUTO_INCREMENT PRIMARY KEY,
    expediente_id INT NOT NULL,
    tipo VARCHAR(32) NOT NULL,
    nombre VARCHAR(512) NOT NULL,
    FOREIGN KEY (expediente_id) REFERENCES expedientes(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
)

// SQLite DDL. Dates are stored as ISO 8601 text.
const (
	sqliteCreateCases = `CREATE TABLE IF NOT EXISTS expedientes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    expediente TEXT NOT NULL,
    jurisdiccion TEXT NOT NULL,
    dependencia TEXT NOT NULL,
    situacion_actual TEXT,
    caratula TEXT
)`

	sqliteCreateMovements = `CREATE TABLE IF NOT EXISTS movimientos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    expediente_id INTEGER NOT NULL,
    fecha TEXT NULL,
    tipo TEXT,
    detalle TEXT,
    FOREIGN KEY (expediente_id) REFERENCES expedientes(id) ON DELETE CASCADE
)`

	sqliteCreateParticipants = `CREATE TABLE IF NOT EXISTS participantes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    expediente_id INTEGER NOT NULL,
    tipo TEXT NOT NULL,
    nombre TEXT NOT NULL,
    FOREIGN KEY (expediente_id) REFERENCES expedientes(id) ON DELETE CASCADE
)`

	sqliteIdxMovementsCase    = `CREATE INDEX IF NOT EXISTS idx_movimientos_expediente ON movimientos(expediente_id)`
	sqliteIdxParticipantsCase = `CREATE INDEX IF NOT EXISTS idx_participantes_expediente ON participantes(expediente_id)`
)

// schemaDDL lists the statements for each driver in dependency order.
var schemaDDL = map[string][]string{
	"mysql": {
		mysqlCreateCases,
		mysqlCreateMovements,
		mysqlCreateParticipants,
	},
	"sqlite": {
		sqliteCreateCases,
		sqliteCreateMovements,
		sqliteCreateParticipants,
		sqliteIdxMovementsCase,
		sqliteIdxParticipantsCase,
	},
}
