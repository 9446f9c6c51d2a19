package common

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func GetENVValue(key, defaultValue string) string {
	if v, found := os.LookupEnv(key); found {
		return v
	}
	return defaultValue
}

// Interrupt blocks until the process receives SIGINT or SIGTERM, or cancel is
// closed.
func Interrupt(cancel <-chan struct{}) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		return fmt.Errorf("received signal %s", sig)
	case <-cancel:
		return errors.New("canceled")
	}
}
