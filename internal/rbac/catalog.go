package rbac

// CatalogEntry is one flat permission row: a single resource:action pair with
// its human description. The flat catalog is the single source of truth; the
// grouped JSON cache on each role is always derived from it.
type CatalogEntry struct {
	Resource    string
	Action      string
	Description string
}

// Catalog declares, per role, the canonical permissions that must exist in the
// permissions table and be linked to that role. Seeding it is idempotent.
func Catalog() map[RoleName][]CatalogEntry {
	return map[RoleName][]CatalogEntry{
		RoleAdmin:    adminCatalog(),
		RoleCustomer: customerCatalog(),
		RoleOperator: operatorCatalog(),
		RoleFinance:  financeCatalog(),
	}
}

// adminCatalog is the complete permission list. The admin role never depends
// on it at resolution time (the superuser short-circuit grants everything),
// but the rows are still seeded so the permissions table stays exhaustive.
func adminCatalog() []CatalogEntry {
	return []CatalogEntry{
		{"users", "read", "View user accounts"},
		{"users", "create", "Create user accounts"},
		{"users", "update", "Edit user accounts"},
		{"users", "delete", "Deactivate user accounts"},
		{"roles", "read", "View roles"},
		{"roles", "update", "Manage role assignments"},
		{"permissions", "read", "View permission catalog"},
		{"family-members", "read", "View family member records"},
		{"family-members", "update", "Edit family member records"},
		{"service-requests", "read", "View tax filing requests"},
		{"service-requests", "create", "Create tax filing requests"},
		{"service-requests", "update", "Edit tax filing requests"},
		{"service-requests", "assign", "Assign requests to operators"},
		{"service-requests", "close", "Close completed requests"},
		{"documents", "read", "View uploaded documents"},
		{"documents", "upload", "Upload documents"},
		{"documents", "approve", "Approve submitted documents"},
		{"documents", "download", "Download documents"},
		{"appointments", "read", "View appointments"},
		{"appointments", "create", "Book appointments"},
		{"appointments", "update", "Reschedule appointments"},
		{"appointments", "cancel", "Cancel appointments"},
		{"subscriptions", "read", "View subscriptions"},
		{"subscriptions", "update", "Manage subscriptions"},
		{"payments", "read", "View payment history"},
		{"payments", "refund", "Issue refunds"},
		{"invoices", "read", "View invoices"},
		{"invoices", "create", "Issue invoices"},
		{"webhooks", "read", "Inspect webhook deliveries"},
		{"webhooks", "replay", "Replay webhook deliveries"},
		{"aws-s3", "read", "Browse stored objects"},
		{"aws-s3", "delete", "Remove stored objects"},
		{"system-settings", "read", "View system settings"},
		{"system-settings", "update", "Change system settings"},
		{"cms-pages", "read", "View CMS pages"},
		{"cms-pages", "update", "Edit CMS pages"},
		{"notifications", "read", "View notifications"},
		{"notifications", "send", "Send notifications"},
		{"courses", "read", "View courses"},
		{"courses", "update", "Manage courses"},
		{"reports", "read", "View operational reports"},
		{"reports", "export", "Export operational reports"},
	}
}

// customerCatalog holds the catalog-managed customer permissions. Own-scoped
// access to service requests and appointments comes from the legacy fallback
// overlay instead (see resolver.go), not from seeded rows.
func customerCatalog() []CatalogEntry {
	return []CatalogEntry{
		{"users", "read", "View own profile"},
		{"users", "update", "Edit own profile"},
		{"family-members", "read", "View own family members"},
		{"family-members", "update", "Edit own family members"},
		{"documents", "read", "View own documents"},
		{"documents", "upload", "Upload own documents"},
		{"documents", "download", "Download own documents"},
		{"subscriptions", "read", "View own subscription"},
		{"payments", "read", "View own payment history"},
		{"notifications", "read", "View own notifications"},
		{"courses", "read", "Browse courses"},
	}
}

func operatorCatalog() []CatalogEntry {
	return []CatalogEntry{
		{"users", "read", "View customer accounts"},
		{"family-members", "read", "View family member records"},
		{"service-requests", "read", "View assigned requests"},
		{"service-requests", "update", "Work assigned requests"},
		{"service-requests", "assign", "Reassign requests"},
		{"service-requests", "close", "Close completed requests"},
		{"documents", "read", "Review submitted documents"},
		{"documents", "approve", "Approve submitted documents"},
		{"documents", "download", "Download documents"},
		{"appointments", "read", "View appointment calendar"},
		{"appointments", "update", "Reschedule appointments"},
		{"appointments", "cancel", "Cancel appointments"},
		{"notifications", "send", "Notify customers"},
	}
}

func financeCatalog() []CatalogEntry {
	return []CatalogEntry{
		{"subscriptions", "read", "View subscriptions"},
		{"subscriptions", "update", "Manage subscriptions"},
		{"payments", "read", "View payment history"},
		{"payments", "refund", "Issue refunds"},
		{"invoices", "read", "View invoices"},
		{"invoices", "create", "Issue invoices"},
		{"reports", "read", "View financial reports"},
		{"reports", "export", "Export financial reports"},
	}
}

// GroupCatalog regroups flat entries by resource, preserving first-seen order
// of resources and actions. The description of the first entry for a resource
// becomes the group description.
func GroupCatalog(entries []CatalogEntry) []PermissionGroup {
	var groups []PermissionGroup
	index := make(map[string]int)
	for _, entry := range entries {
		if entry.Resource == "" || entry.Action == "" {
			continue
		}
		i, ok := index[entry.Resource]
		if !ok {
			index[entry.Resource] = len(groups)
			groups = append(groups, PermissionGroup{
				Resource:    entry.Resource,
				Actions:     []string{entry.Action},
				Description: entry.Description,
			})
			continue
		}
		groups[i].Actions = append(groups[i].Actions, entry.Action)
	}
	return groups
}
