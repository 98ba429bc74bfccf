package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeSelect(t *testing.T) {
	safe := []string{
		"SELECT * FROM customers",
		"SELECT id, name FROM customers WHERE region = 'north'",
		"select count(*) from events group by region",
	}
	for _, q := range safe {
		assert.True(t, IsSafeSelect(q), q)
	}

	unsafe := []string{
		"DELETE FROM customers",
		"DROP TABLE customers",
		"UPDATE customers SET name = 'x'",
		"INSERT INTO customers VALUES (1)",
		"not sql at all",
	}
	for _, q := range unsafe {
		assert.False(t, IsSafeSelect(q), q)
	}
}
