package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfiguration_Defaults(t *testing.T) {
	c := &Configuration{}
	require.NoError(t, c.load(nil))

	require.Equal(t, 7, c.Governance.ImminentDeadlineDays)
	require.Equal(t, "workplan", c.Database.Name)
	require.Contains(t, c.Database.ConnectionString(), "dbname=workplan")
}

func TestConfiguration_AdminRoleSet(t *testing.T) {
	c := &Configuration{AdminRoles: "Admin, SuperAdmin ,,Administrador"}
	set := c.AdminRoleSet()

	require.Len(t, set, 3)
	require.Contains(t, set, "SuperAdmin")
	require.NotContains(t, set, "")
}

func TestConfiguration_ImminentWindowOverride(t *testing.T) {
	t.Setenv("GOVERNANCE_IMMINENT_DEADLINE_DAYS", "2")

	c := &Configuration{}
	require.NoError(t, c.load(nil))
	require.Equal(t, 2, c.Governance.ImminentDeadlineDays)
}
