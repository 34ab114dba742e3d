// Package pretty holds the one-line logging helpers used outside request scope.
package pretty

import (
	log "github.com/sirupsen/logrus"
)

func Logln(args ...interface{}) {
	log.Infoln(args...)
}

func Logf(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func LoglnWarn(args ...interface{}) {
	log.Warnln(args...)
}

func LoglnError(args ...interface{}) {
	log.Errorln(args...)
}

// LoglnFatal logs and exits. A format string as the first argument is honored
// so that call sites like LoglnFatal("create model %s : %s", m, err) read well.
func LoglnFatal(args ...interface{}) {
	if len(args) > 1 {
		if format, ok := args[0].(string); ok && containsVerb(format) {
			log.Fatalf(format, args[1:]...)
			return
		}
	}
	log.Fatalln(args...)
}

func containsVerb(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '%' && s[i+1] != '%' {
			return true
		}
	}
	return false
}
