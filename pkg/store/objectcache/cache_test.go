/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package objectcache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

type session struct {
	State string
	Seen  []string
}

func cloneSession(s *session) *session {
	c := *s
	c.Seen = append([]string(nil), s.Seen...)

	return &c
}

func TestCache(t *testing.T) {
	t.Run("insert and get", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)

		key := c.Insert("thread-1", &session{State: "RequestSet"})
		require.Equal(t, "thread-1", key)
		require.True(t, c.Contains("thread-1"))

		v, err := c.Get("thread-1")
		require.NoError(t, err)
		require.Equal(t, "RequestSet", v.State)
	})

	t.Run("missing key", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)

		_, err := c.Get("nope")
		require.True(t, errkind.Is(err, errkind.NotFound))

		_, err = c.GetCloned("nope")
		require.True(t, errkind.Is(err, errkind.NotFound))

		require.True(t, errkind.Is(c.Release("nope"), errkind.NotFound))
		require.False(t, c.Contains("nope"))
	})

	t.Run("cloned value is detached", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)
		c.Insert("t", &session{State: "RequestSet", Seen: []string{"a"}})

		cl, err := c.GetCloned("t")
		require.NoError(t, err)

		cl.State = "RequestSent"
		cl.Seen[0] = "b"

		stored, err := c.Get("t")
		require.NoError(t, err)
		require.Equal(t, "RequestSet", stored.State)
		require.Equal(t, []string{"a"}, stored.Seen)
	})

	t.Run("release then lookup fails", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)
		c.Insert("t", &session{})

		require.NoError(t, c.Release("t"))

		_, err := c.Get("t")
		require.True(t, errkind.Is(err, errkind.NotFound))
	})

	t.Run("drain", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)
		c.Insert("a", &session{})
		c.Insert("b", &session{})
		require.Equal(t, 2, c.Len())
		require.ElementsMatch(t, []string{"a", "b"}, c.Keys())

		c.Drain()
		c.Drain()
		require.Zero(t, c.Len())
	})

	t.Run("last writer wins", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)
		c.Insert("t", &session{State: "RequestSent"})

		first, err := c.GetCloned("t")
		require.NoError(t, err)
		second, err := c.GetCloned("t")
		require.NoError(t, err)

		first.State = "Finished"
		second.State = "Failed"

		c.Insert("t", first)
		c.Insert("t", second)

		v, err := c.Get("t")
		require.NoError(t, err)
		require.Equal(t, "Failed", v.State)
	})

	t.Run("concurrent access", func(t *testing.T) {
		c := New[string, *session]("verifier", cloneSession)

		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				key := fmt.Sprintf("t-%d", i)
				c.Insert(key, &session{State: "RequestSet"})

				_, err := c.GetCloned(key)
				require.NoError(t, err)
			}(i)
		}

		wg.Wait()
		require.Equal(t, 50, c.Len())
	})
}

func TestHandles(t *testing.T) {
	h := NewHandles[*session]("disclosed proof", cloneSession)

	first := h.Add(&session{State: "RequestReceived"})
	second := h.Add(&session{State: "RequestReceived"})
	require.Equal(t, uint32(1), first)
	require.Equal(t, uint32(2), second)
	require.Equal(t, []uint32{1, 2}, h.Keys())

	require.NoError(t, h.Release(first))

	_, err := h.Get(first)
	require.True(t, errkind.Is(err, errkind.InvalidHandle))

	third := h.Add(&session{})
	require.Equal(t, uint32(3), third, "released handles are not reused")

	h.Drain()
	require.False(t, h.Contains(second))
}
