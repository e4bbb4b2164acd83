package access

import (
	"encoding/json"
	"testing"

	"feedhub/internal/configsvc"
	"feedhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func setting(name, value string) configsvc.Setting {
	return configsvc.Setting{Name: name, Value: json.RawMessage(value)}
}

func TestUserCategory(t *testing.T) {
	settings := []configsvc.Setting{
		setting("system.roles.moderator", `["editor","author"]`),
		setting("system.roles.administrator", `["administrator"]`),
		setting("system.limits.daily", `["editor"]`),
		setting("roles", `["editor"]`),
	}

	assert.Equal(t, []string{"moderator"}, UserCategory([]string{"editor"}, settings))
	assert.Equal(t, []string{"administrator", "moderator"},
		UserCategory([]string{"author", "administrator", "editor"}, settings))
	assert.Equal(t, []string{Unknown}, UserCategory([]string{"subscriber"}, settings))
	assert.Equal(t, []string{Unknown}, UserCategory(nil, settings))
}

func TestUserCategory_StringValueIsSubstringMatch(t *testing.T) {
	settings := []configsvc.Setting{setting("system.ROLES.user", `"subscriber,customer"`)}
	assert.Equal(t, []string{"user"}, UserCategory([]string{"customer"}, settings))
}

func TestResolve(t *testing.T) {
	m := FromRows([]models.RoleCategory{
		{Category: "moderator", Role: "editor"},
		{Category: "user", Role: "subscriber"},
		{Category: "user", Role: "editor"},
	})
	assert.Equal(t, []string{"moderator", "user"}, Resolve([]string{"editor"}, m))
	assert.Equal(t, []string{Unknown}, Resolve([]string{"ghost"}, m))
}

func TestFromConfigs(t *testing.T) {
	m := FromConfigs([]configsvc.Setting{
		setting("system.roles.user", `["subscriber","author"]`),
		setting("system.roles.theme", `{"dark": true}`),
		setting("system.limits.daily", `["x"]`),
	})
	assert.Equal(t, Mapping{"user": {"author", "subscriber"}}, m)
}

func TestCategoryOf(t *testing.T) {
	cat, ok := CategoryOf("system.roles.moderator")
	assert.True(t, ok)
	assert.Equal(t, "moderator", cat)

	_, ok = CategoryOf("system.roles")
	assert.False(t, ok)
	_, ok = CategoryOf("system.flags.moderator")
	assert.False(t, ok)
}
