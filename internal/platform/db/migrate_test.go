package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/bistro-hq/bistro/migrations"
)

func TestMigrationsOrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_menus_up.sql":            {Data: []byte("SELECT 2")},
		"0001_access_control_up.sql":   {Data: []byte("SELECT 1")},
		"0001_access_control_down.sql": {Data: []byte("SELECT 0")},
		"README.md":                    {Data: []byte("notes")},
	}
	names, err := Migrations(fsys)
	require.NoError(t, err)
	require.Equal(t, []string{"0001_access_control_up.sql", "0002_menus_up.sql"}, names)

	require.Equal(t, []string{"0002_menus_up.sql"}, Pending(names, map[string]bool{"0001_access_control_up.sql": true}))
	require.Empty(t, Pending(names, map[string]bool{"0001_access_control_up.sql": true, "0002_menus_up.sql": true}))
}

func TestEmbeddedAccessControlSchema(t *testing.T) {
	names, err := Migrations(migrations.FS)
	require.NoError(t, err)
	require.Contains(t, names, "0001_access_control_up.sql")

	body, err := migrations.FS.ReadFile("0001_access_control_up.sql")
	require.NoError(t, err)
	for _, constraint := range []string{
		"roles_name_key",
		"role_claims_role_id_claim_type_claim_value_key",
		"users_username_key",
		"users_email_key",
		"user_roles_pkey",
	} {
		require.Contains(t, string(body), constraint)
	}
}
