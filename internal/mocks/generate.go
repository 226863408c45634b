package mocks

//go:generate mockery --name OrderStore --srcpkg github.com/redprice-lab/redprice-analytics/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name ReportCache --srcpkg github.com/redprice-lab/redprice-analytics/internal/cache --output ./cache --outpkg cachemocks --with-expecter
