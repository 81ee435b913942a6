package envs

import (
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/narasux/vidvote/pkg/common/runtime"
	"github.com/narasux/vidvote/pkg/utils/envx"
	"github.com/narasux/vidvote/pkg/utils/pathx"
)

// 优先加载 .env 文件（若存在），必须先于下方变量初始化执行
var _ = godotenv.Load()

// BaseDir 项目根目录
var BaseDir = filepath.Join(pathx.GetCurPKGPath(), "../..")

// 以下变量值可通过环境变量指定
var (
	// ServerPort web 服务启用端口
	ServerPort = envx.Get("SERVER_PORT", "8080")

	// GinRunMode web 服务运行模式
	GinRunMode = envx.Get("GIN_RUN_MODE", runtime.RunMode)

	// LogFileBaseDir 日志存放目录
	LogFileBaseDir = envx.Get("LOG_FILE_BASE_DIR", filepath.Join(BaseDir, "logs"))

	// LogLevel 日志等级（panic/fatal/error/warn/info/debug/trace）
	LogLevel = envx.Get("LOG_LEVEL", "info")

	// LogToFile 是否同时写入日志文件，容器内运行时可关闭，只输出到 stdout
	LogToFile = envx.GetBool("LOG_TO_FILE", true)
	// LogFileMaxSize 单个日志文件大小上限（MB）
	LogFileMaxSize = envx.GetInt("LOG_FILE_MAX_SIZE", 128)
	// LogFileMaxBackups 保留的归档文件数量
	LogFileMaxBackups = envx.GetInt("LOG_FILE_MAX_BACKUPS", 10)
	// LogFileMaxAge 归档文件保留天数
	LogFileMaxAge = envx.GetInt("LOG_FILE_MAX_AGE", 14)
	// LogFileCompress 是否压缩归档文件
	LogFileCompress = envx.GetBool("LOG_FILE_COMPRESS", false)

	// RealClientIPHeaderKey 反向代理透传的客户端真实 IP 请求头
	RealClientIPHeaderKey = envx.Get("REAL_CLIENT_IP_HEADER_KEY", "CF-Connecting-IP")
)

// 投票存储
var (
	// StoreBackend 投票数据存储后端（sql/dynamodb）
	StoreBackend = envx.Get("STORE_BACKEND", "sql")

	// AutoMigrate 服务启动时是否自动执行数据库迁移
	AutoMigrate = envx.GetBool("AUTO_MIGRATE", true)

	// BlacklistDefaultMin 黑名单默认的最小踩数
	BlacklistDefaultMin = envx.GetInt("BLACKLIST_DEFAULT_MIN", 10)
)

// 关系型数据库
var (
	// DBDriver 数据库驱动（mysql/postgres/sqlite）
	DBDriver = envx.Get("DB_DRIVER", "sqlite")

	// MysqlHost 数据库地址
	MysqlHost = envx.Get("MYSQL_HOST", "127.0.0.1")
	// MysqlPort 数据库端口
	MysqlPort = envx.Get("MYSQL_PORT", "3306")
	// MysqlUser 数据库用户
	MysqlUser = envx.Get("MYSQL_USER", "root")
	// MysqlPassword 数据库密码
	MysqlPassword = envx.Get("MYSQL_PASSWORD", "")
	// MysqlDatabase 数据库名称
	MysqlDatabase = envx.Get("MYSQL_DATABASE", "vidvote")
	// MysqlCharSet 字符集
	MysqlCharSet = envx.Get("MYSQL_CHARSET", "utf8mb4")

	// PostgresDSN PostgreSQL 连接串
	PostgresDSN = envx.Get("POSTGRES_DSN", "host=127.0.0.1 port=5432 user=postgres dbname=vidvote sslmode=disable")

	// SqlitePath SQLite 数据文件路径
	SqlitePath = envx.Get("SQLITE_PATH", "vidvote.db")
)

// DynamoDB
var (
	// DynamoDBEndpoint 自定义访问地址（如 DynamoDB Local），为空则使用 AWS 默认地址
	DynamoDBEndpoint = envx.Get("DYNAMODB_ENDPOINT", "")
	// DynamoDBTallyTable 计票表名
	DynamoDBTallyTable = envx.Get("DYNAMODB_TALLY_TABLE", "votes")
	// DynamoDBBallotTable 用户投票表名
	DynamoDBBallotTable = envx.Get("DYNAMODB_BALLOT_TABLE", "user_votes")
)

// 静态资源缓存
var (
	// AssetOrigin 静态资源源站地址，为空则不启用资源代理
	AssetOrigin = envx.Get("ASSET_ORIGIN", "")
	// AssetCacheName 缓存分区名称（带版本号）
	AssetCacheName = envx.Get("ASSET_CACHE_NAME", "sv-v1")
	// AssetPrecachePaths 预缓存路径列表
	AssetPrecachePaths = envx.GetList(
		"ASSET_PRECACHE_PATHS", []string{"/", "/index.html", "/manifest.json", "/videos.json"},
	)
	// AssetExcludedExts 不做缓存的文件扩展名
	AssetExcludedExts = envx.GetList("ASSET_EXCLUDED_EXTS", []string{".mp4"})
	// AssetCacheBackend 缓存存储后端（memory/redis）
	AssetCacheBackend = envx.Get("ASSET_CACHE_BACKEND", "memory")
)

// Redis
var (
	// RedisAddr Redis 地址
	RedisAddr = envx.Get("REDIS_ADDR", "127.0.0.1:6379")
	// RedisPassword Redis 密码
	RedisPassword = envx.Get("REDIS_PASSWORD", "")
	// RedisDB Redis DB 编号
	RedisDB = envx.GetInt("REDIS_DB", 0)
)
