package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestPersistenceGetters(t *testing.T) {
	p := Persistence{DSN: "file:test.db"}

	assert.Equal(t, sqliteshim.ShimName, p.GetDriver())
	assert.Equal(t, "file:test.db", p.GetServer())
	assert.Equal(t, "oauth2", p.GetDatabase())
	assert.Equal(t, 5*time.Second, p.GetPingTimeout())
	assert.False(t, p.GetDebug())
	assert.Empty(t, p.GetOtelIdentifier())

	p = Persistence{Driver: "sqlite3", Database: "users", PingTimeoutExpression: "250ms", OtelIdentifier: "oauth2-db"}
	assert.Equal(t, "sqlite3", p.GetDriver())
	assert.Equal(t, "users", p.GetDatabase())
	assert.Equal(t, 250*time.Millisecond, p.GetPingTimeout())
	assert.Equal(t, "oauth2-db", p.GetOtelIdentifier())
}

func TestBaseConfigValidate(t *testing.T) {
	valid := BaseConfig{
		Persistence: Persistence{DSN: "file:test.db"},
		OAuth2:      OAuth2{SigningKey: "secret"},
	}
	assert.NoError(t, valid.Validate())

	missingKey := valid
	missingKey.OAuth2 = OAuth2{}
	assert.Error(t, missingKey.Validate())

	missingDSN := valid
	missingDSN.Persistence = Persistence{}
	assert.Error(t, missingDSN.Validate())
}

func TestProvisionerFixedRumToken(t *testing.T) {
	assert.Equal(t, "rum-fixed", Provisioner{FixedRumToken: " rum-fixed "}.GetFixedRumToken())
	assert.Empty(t, Provisioner{}.GetFixedRumToken())
}
