package observability

var (
	BuildResource = buildResource
	SelectSampler = selectSampler
)
