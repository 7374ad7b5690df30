package config

import "os"

func IsDebug() bool {
	return os.Getenv("ZHIPU_DEBUG") == "1"
}
