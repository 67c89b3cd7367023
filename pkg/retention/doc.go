// Package retention classifies backup artifacts into Grandfather-Father-Son
// tiers and plans which of them survive cleanup.
//
// Classification is calendar based: an artifact taken on the first day of a
// month is monthly, one taken on a Monday is weekly, anything else is daily.
// The anchors are constants.
//
// Planning never touches the filesystem:
//
//	artifacts, err := retention.Scan(root, time.Local)
//	plan := retention.PlanEviction(artifacts, policy, dryRun)
//	result, err := retention.Apply(plan, nil)
//
// Apply is idempotent; a path that is already gone is reported as missing.
// Plans only reference artifacts present in their input, so a backup written
// after Scan is never considered for deletion.
package retention
