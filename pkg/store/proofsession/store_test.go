/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofsession

import (
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

func TestStore(t *testing.T) {
	s, err := New(mem.NewProvider())
	require.NoError(t, err)

	require.NoError(t, s.Save(&Record{ThreadID: "t1", Role: RoleVerifier, State: "request-sent", Data: "{}"}))
	require.NoError(t, s.Save(&Record{ThreadID: "t2", Role: RoleVerifier, State: "request-set", Data: "{}"}))
	require.NoError(t, s.Save(&Record{ThreadID: "t1", Role: RoleProver, State: "request-received", Data: "{}"}))

	t.Run("get", func(t *testing.T) {
		rec, err := s.Get(RoleProver, "t1")
		require.NoError(t, err)
		require.Equal(t, "request-received", rec.State)

		_, err = s.Get(RoleProver, "t2")
		require.True(t, errkind.Is(err, errkind.NotFound))
	})

	t.Run("list by role", func(t *testing.T) {
		verifiers, err := s.List(RoleVerifier)
		require.NoError(t, err)
		require.Len(t, verifiers, 2)

		provers, err := s.List(RoleProver)
		require.NoError(t, err)
		require.Len(t, provers, 1)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Save(&Record{ThreadID: "t2", Role: RoleVerifier, State: "request-sent", Data: "{}"}))

		rec, err := s.Get(RoleVerifier, "t2")
		require.NoError(t, err)
		require.Equal(t, "request-sent", rec.State)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(RoleVerifier, "t2"))
		require.NoError(t, s.Delete(RoleVerifier, "t2"))

		verifiers, err := s.List(RoleVerifier)
		require.NoError(t, err)
		require.Len(t, verifiers, 1)
	})

	t.Run("invalid record", func(t *testing.T) {
		require.True(t, errkind.Is(s.Save(&Record{Role: RoleProver}), errkind.InvalidOption))
		require.True(t, errkind.Is(s.Save(&Record{ThreadID: "t", Role: "issuer"}), errkind.InvalidOption))
	})
}
