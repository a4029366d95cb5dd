package telemetry_test

import (
	"reflect"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/telemetry"
)

func assertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected == nil || actual == nil {
		if expected != actual {
			t.Fatal(expected, actual)
		}
		return
	}
	if !reflect.DeepEqual(expected, actual) {
		t.Fatal(expected, actual)
	}
}

func TestLevel_String(t *testing.T) {
	assertEqual(t, "DEBUG", telemetry.Debug.String())
	assertEqual(t, "INFO", telemetry.Info.String())
	assertEqual(t, "WARN", telemetry.Warn.String())
	assertEqual(t, "ERROR", telemetry.Error.String())

	unknown := telemetry.Level(666)
	assertEqual(t, "UNKNOWN", unknown.String())
}
