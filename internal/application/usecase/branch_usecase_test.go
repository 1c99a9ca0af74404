package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBranchCreate_CodigoUnicoPorOrganizacion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.accounts.Create(ctx, createReq("u1", "GROWTH"))
	require.NoError(t, err)
	b, err := e.accounts.Create(ctx, createReq("u2", "GROWTH"))
	require.NoError(t, err)

	_, err = e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Centro", Code: strPtr("DT-01")})
	require.NoError(t, err)
	_, err = e.branches.Create(ctx, b.Account.ID, dto.CreateBranchRequest{Name: "Centro", Code: strPtr("DT-01")})
	require.NoError(t, err, "otra organización puede repetir el código")

	_, err = e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Otra", Code: strPtr(" DT-01 ")})
	assert.ErrorIs(t, err, domain.ErrBranchCodeTaken)
}

func TestBranchCreate_LimiteDelPlan(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.accounts.Create(ctx, createReq("u1", "STARTUP")) // 3 sucursales
	require.NoError(t, err)

	var created atomic.Int32
	var limited atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Sucursal"})
			switch {
			case err == nil:
				created.Add(1)
			case assert.ErrorIs(t, err, domain.ErrBranchLimitReached):
				limited.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(3), created.Load())
	assert.Equal(t, int32(3), limited.Load())

	// Una sucursal inactiva no cuenta contra el límite.
	_, err = e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Histórica", IsActive: boolPtr(false)})
	assert.NoError(t, err)
}

func TestBranchDeactivate_LiberaCupoYReactivarVerificaLimite(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.accounts.Create(ctx, createReq("u1", "STARTUP"))
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		b, err := e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "S"})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	off, err := e.branches.Deactivate(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	_, err = e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Nueva"})
	require.NoError(t, err)

	_, err = e.branches.Update(ctx, ids[0], dto.UpdateBranchRequest{IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrBranchLimitReached)
}

func TestBranch_GetUpdateDelete(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.accounts.Create(ctx, createReq("u1", "GROWTH"))
	require.NoError(t, err)
	b, err := e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Norte", Country: "co"})
	require.NoError(t, err)
	assert.Equal(t, "CO", b.Country)

	up, err := e.branches.Update(ctx, b.ID, dto.UpdateBranchRequest{Name: strPtr("Norte 2"), City: strPtr("Bogotá")})
	require.NoError(t, err)
	assert.Equal(t, "Norte 2", up.Name)
	assert.Equal(t, "Bogotá", up.City)

	got, err := e.branches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Norte 2", got.Name)

	require.NoError(t, e.branches.Delete(ctx, b.ID))
	_, err = e.branches.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)
	assert.ErrorIs(t, e.branches.Delete(ctx, b.ID), domain.ErrBranchNotFound)
}

func TestBranchCreate_CuentaInexistente(t *testing.T) {
	e := newEnv()
	_, err := e.branches.Create(context.Background(), "ghost", dto.CreateBranchRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestBranchList_FiltroActivas(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.accounts.Create(ctx, createReq("u1", "GROWTH"))
	require.NoError(t, err)
	_, err = e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "A"})
	require.NoError(t, err)
	_, err = e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "B", IsActive: boolPtr(false)})
	require.NoError(t, err)

	all, err := e.branches.ListByOrganization(ctx, a.Account.ID, false, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)

	active, err := e.branches.ListByOrganization(ctx, a.Account.ID, true, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, active.Page.Total)
	assert.Equal(t, "A", active.Items[0].Name)
}

func TestBranchDeactivate_ConcurrenteConUpdate_ConservaAmbos(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.accounts.Create(ctx, createReq("u1", "GROWTH"))
	require.NoError(t, err)
	b, err := e.branches.Create(ctx, a.Account.ID, dto.CreateBranchRequest{Name: "Centro"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var deactivateErr, updateErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, deactivateErr = e.branches.Deactivate(ctx, b.ID)
	}()
	go func() {
		defer wg.Done()
		_, updateErr = e.branches.Update(ctx, b.ID, dto.UpdateBranchRequest{Name: strPtr("Centro Histórico")})
	}()
	wg.Wait()
	require.NoError(t, deactivateErr)
	require.NoError(t, updateErr)

	got, err := e.branches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Centro Histórico", got.Name)
}
