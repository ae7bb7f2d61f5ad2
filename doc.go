// Package binder is a user-space client for the Android Binder IPC driver.
//
// A Connection opens /dev/binder (or another Binder domain's node) and maps
// the kernel's receive arena. Proxy values name remote Binder objects by
// integer handle and support Transact for two-way and one-way calls. Owned
// parcels (OwnedParcel) build request payloads; borrowed parcels
// (BorrowedParcel) wrap the kernel-owned reply buffer and must be released
// exactly once. ServiceManager and ActivityManager are thin stubs over the
// two well-known system services most clients need to bootstrap against.
//
// A Connection is not safe for concurrent use; open one per goroutine, or
// synchronize access externally.
package binder
