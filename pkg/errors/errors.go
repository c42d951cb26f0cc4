package errors

import "errors"

// ErrSnapshotStale 快照刷新结果已被更新的刷新请求取代
var ErrSnapshotStale = errors.New("快照刷新已被更新的请求取代")
