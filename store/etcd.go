package store

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Etcd implements KV on top of an etcd client. Set-if-absent is expressed as
// a transaction guarded on the key's create revision; expiration attaches a
// lease to the already-written key.
type Etcd struct {
	client *clientv3.Client
}

// NewEtcd creates an etcd-backed KV.
func NewEtcd(client *clientv3.Client) *Etcd {
	return &Etcd{client: client}
}

func (e *Etcd) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	resp, err := e.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, value)).
		Commit()
	if err != nil {
		return false, err
	}
	return resp.Succeeded, nil
}

func (e *Etcd) Get(ctx context.Context, key string) (string, bool, error) {
	resp, err := e.client.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

func (e *Etcd) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		// etcd lease granularity is whole seconds
		seconds = 1
	}
	lease, err := e.client.Grant(ctx, seconds)
	if err != nil {
		return false, err
	}
	resp, err := e.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), ">", 0)).
		Then(clientv3.OpPut(key, "", clientv3.WithLease(lease.ID), clientv3.WithIgnoreValue())).
		Commit()
	if err != nil {
		return false, err
	}
	if !resp.Succeeded {
		// The key vanished before the lease could be attached; release it.
		_, _ = e.client.Revoke(ctx, lease.ID)
		return false, nil
	}
	return true, nil
}

func (e *Etcd) Delete(ctx context.Context, key string) error {
	_, err := e.client.Delete(ctx, key)
	return err
}

func (e *Etcd) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := e.client.Get(ctx, key, clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}
