package descriptor

import "github.com/arkivo/depositor/common/models"

// ClearReplicationPolicy removes any replication policy from the
// descriptor. Some repository node tiers reject explicit policies; whether
// this runs is controlled by configuration, not hard-coded.
func ClearReplicationPolicy(d *models.Descriptor) *models.Descriptor {
	d.ReplicationPolicy = nil
	return d
}

// ApplyAccessRules attaches the standard access-control rule set.
func ApplyAccessRules(d *models.Descriptor, rules []models.AccessRule) *models.Descriptor {
	d.AccessRules = append([]models.AccessRule(nil), rules...)
	return d
}
