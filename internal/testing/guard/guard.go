package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TASKDECK_TEST_MODE") == "" {
			_ = os.Setenv("TASKDECK_TEST_MODE", "1")
		}
	})
}
