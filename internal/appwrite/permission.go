package appwrite

import (
	"strings"

	"github.com/google/uuid"
)

func UserRole(userID string) string {
	return "user:" + userID
}

func ReadPermission(role string) string {
	return `read("` + role + `")`
}

func UpdatePermission(role string) string {
	return `update("` + role + `")`
}

func DeletePermission(role string) string {
	return `delete("` + role + `")`
}

// UniqueID returns a fresh 32 character id accepted for users and rows.
func UniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
