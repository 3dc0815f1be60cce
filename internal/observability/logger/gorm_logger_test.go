package logger

import "testing"

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM fare_rules":                                  "SELECT",
		"  insert into fare_classes (id) values (1)":                "INSERT",
		"WITH ranked AS (SELECT 1) UPDATE fare_rules SET active = 0": "SELECT",
		"":                                                          "UNKNOWN",
		"VACUUM":                                                    "UNKNOWN",
	}
	for sql, want := range cases {
		if got := operationFromSQL(sql); got != want {
			t.Fatalf("operationFromSQL(%q) = %q, want %q", sql, got, want)
		}
	}
}
