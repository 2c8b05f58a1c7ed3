package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	StateStoreMemory = "memory"
	StateStoreRedis  = "redis"
)

const (
	MimeHTML = "text/html; charset=utf-8"
)

// 学习档案默认等级
const (
	DefaultEnglishLevel     = "B1"
	DefaultProgrammingLevel = "beginner"
)

var (
	EnglishLevels     = []string{"A1", "A2", "B1", "B2", "C1", "C2"}
	ProgrammingLevels = []string{"beginner", "intermediate", "advanced"}
)
