package mocks

//go:generate mockery --name Directory --srcpkg github.com/aevon-lab/eventreg/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name BalanceStore --srcpkg github.com/aevon-lab/eventreg/internal/ledger --output ./ledger --outpkg ledgermocks --with-expecter
//go:generate mockery --name ChangeStream --srcpkg github.com/aevon-lab/eventreg/internal/ledger --output ./ledger --outpkg ledgermocks --with-expecter
