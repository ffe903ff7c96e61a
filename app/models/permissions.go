package models

// Permission keys. The set is fixed; role bags may only contain these.
const (
	PermUsersView          = "users.view"
	PermUsersManage        = "users.manage"
	PermRolesManage        = "roles.manage"
	PermSettingsManage     = "settings.manage"
	PermSchoolsManage      = "schools.manage"
	PermShopsManage        = "shops.manage"
	PermListingsManage     = "listings.manage"
	PermCatalogManage      = "catalog.manage"
	PermTransactionsView   = "transactions.view"
	PermTransactionsManage = "transactions.manage"
	PermEmailsManage       = "emails.manage"
	PermStorageManage      = "storage.manage"
	PermFilesUpload        = "files.upload"
)

// AllPermissions lists every key in display order.
var AllPermissions = []string{
	PermUsersView, PermUsersManage, PermRolesManage, PermSettingsManage,
	PermSchoolsManage, PermShopsManage, PermListingsManage, PermCatalogManage,
	PermTransactionsView, PermTransactionsManage, PermEmailsManage,
	PermStorageManage, PermFilesUpload,
}

var knownPermissions = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllPermissions))
	for _, p := range AllPermissions {
		m[p] = struct{}{}
	}
	return m
}()

func IsPermission(key string) bool {
	_, ok := knownPermissions[key]
	return ok
}
