package permissions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateForModule(t *testing.T) {
	for _, module := range []string{"Dish", "Kitchen", "x", "Multi.Part"} {
		ids := GenerateForModule(module)
		require.Len(t, ids, 4)
		require.Equal(t, []string{
			"Permissions." + module + ".Create",
			"Permissions." + module + ".View",
			"Permissions." + module + ".Edit",
			"Permissions." + module + ".Delete",
		}, ids)
		for _, id := range ids {
			require.True(t, strings.Contains(id, module))
		}
	}
}

func TestAllCoversDeclaredConstants(t *testing.T) {
	declared := []string{
		DishCreate, DishView, DishEdit, DishDelete,
		MenuCreate, MenuView, MenuEdit, MenuDelete,
		PaymentCreate, PaymentView, PaymentEdit, PaymentDelete,
		ReservationCreate, ReservationView, ReservationEdit, ReservationDelete,
		TableCreate, TableView, TableEdit, TableDelete,
		RoleCreate, RoleView, RoleEdit, RoleDelete,
		UserCreate, UserView, UserEdit, UserDelete,
		UserRoleCreate, UserRoleView, UserRoleEdit, UserRoleDelete,
	}
	values := Values()
	require.Len(t, values, len(declared))
	for _, id := range declared {
		require.Contains(t, values, id)
		require.True(t, Known(id), id)
	}
	for _, c := range All() {
		require.Equal(t, ClaimType, c.Type)
	}
}

func TestAllMatchesGeneratedModules(t *testing.T) {
	var expected []string
	for _, module := range Registry {
		expected = append(expected, GenerateForModule(module.Name)...)
	}
	require.Equal(t, expected, Values())
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].Value = "mutated"
	require.Equal(t, DishCreate, All()[0].Value)
}

func TestDiscoverEmptyAndDuplicates(t *testing.T) {
	require.Empty(t, Discover(nil))
	require.Empty(t, Discover([]Module{{Name: "Empty"}}))

	claims := Discover([]Module{
		{Name: "Dish", Actions: []string{ActionView, ActionView}},
		{Name: "Dish", Actions: []string{ActionView, ActionEdit}},
		{Name: "", Actions: CRUD()},
	})
	require.Equal(t, []Claim{
		{Type: ClaimType, Value: DishView},
		{Type: ClaimType, Value: DishEdit},
	}, claims)
}

func TestParse(t *testing.T) {
	module, action, ok := Parse(TableDelete)
	require.True(t, ok)
	require.Equal(t, "Table", module)
	require.Equal(t, ActionDelete, action)

	for _, bad := range []string{
		"",
		"Permissions.Dish",
		"Permissions.Dish.Approve",
		"permissions.dish.view",
		"Permissions..View",
		"Permissions.Dish.View.Extra",
	} {
		_, _, ok := Parse(bad)
		require.False(t, ok, bad)
	}
	require.False(t, Known("Permissions.Kitchen.View"))
}
