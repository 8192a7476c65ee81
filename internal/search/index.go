package search

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// ErrIndexUnavailable 索引不可达。默认直接向上传播，
// 只有显式配置 degrade 时才退化为"不过滤"。
var ErrIndexUnavailable = errors.New("search index unavailable")

// Index 是 idea 标题+描述的全文索引。
// 写路径（建/改 idea）同步调用 Upsert/Delete，保证搜索读己之写。
type Index struct {
	idx     bleve.Index
	degrade bool
}

// ideaDoc 每个字段各索引两份：标准分析器（转小写）支持大小写不敏感匹配，
// exact 分析器保留原始大小写 token，后续支持精确大小写查询时无需重建索引。
type ideaDoc struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	TitleExact       string `json:"title_exact"`
	DescriptionExact string `json:"description_exact"`
}

// Open 打开或创建索引。path 为空时使用内存索引（测试/本地开发）。
func Open(path string, degrade bool) (*Index, error) {
	m, err := buildMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to build index mapping: %w", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &Index{idx: idx, degrade: degrade}, nil
	}

	idx, err = bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, m)
		if err != nil {
			return nil, fmt.Errorf("failed to create new index: %w", err)
		}
		return &Index{idx: idx, degrade: degrade}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return &Index{idx: idx, degrade: degrade}, nil
}

func buildMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	// unicode 分词但不挂 lowercase filter
	if err := m.AddCustomAnalyzer("exact_case", map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{},
	}); err != nil {
		return nil, err
	}

	doc := bleve.NewDocumentMapping()

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	doc.AddFieldMappingsAt("title", titleField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = standard.Name
	doc.AddFieldMappingsAt("description", descField)

	exactField := bleve.NewTextFieldMapping()
	exactField.Analyzer = "exact_case"
	exactField.Store = false
	doc.AddFieldMappingsAt("title_exact", exactField)
	doc.AddFieldMappingsAt("description_exact", exactField)

	m.DefaultMapping = doc
	return m, nil
}

// Upsert 写入或覆盖一个 idea 的索引文档
func (s *Index) Upsert(id uint, title, description string) error {
	doc := ideaDoc{
		Title:            title,
		Description:      description,
		TitleExact:       title,
		DescriptionExact: description,
	}
	if err := s.idx.Index(docID(id), doc); err != nil {
		return fmt.Errorf("%w: index write failed: %v", ErrIndexUnavailable, err)
	}
	return nil
}

// Delete 移除一个 idea 的索引文档
func (s *Index) Delete(id uint) error {
	if err := s.idx.Delete(docID(id)); err != nil {
		return fmt.Errorf("%w: index delete failed: %v", ErrIndexUnavailable, err)
	}
	return nil
}

// Query 把空白分隔的检索词解析为候选 idea 集合。
// 词与词之间是 AND 关系，每个词在标题或描述中命中即可，匹配不区分大小写。
// 返回 filtered=false 表示没有检索词，不做过滤（匹配全部 idea）。
func (s *Index) Query(raw string) (ids []uint, filtered bool, err error) {
	terms := strings.Fields(raw)
	if len(terms) == 0 {
		return nil, false, nil
	}

	perTerm := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		title := bleve.NewMatchQuery(term)
		title.SetField("title")
		desc := bleve.NewMatchQuery(term)
		desc.SetField("description")
		perTerm = append(perTerm, bleve.NewDisjunctionQuery(title, desc))
	}

	count, err := s.idx.DocCount()
	if err != nil {
		return s.queryFailed(err)
	}

	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(perTerm...))
	req.Size = int(count) // 候选集交给 SQL 层排序分页，这里要全量返回
	res, err := s.idx.Search(req)
	if err != nil {
		return s.queryFailed(err)
	}

	ids = make([]uint, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, convErr := strconv.ParseUint(hit.ID, 10, 64)
		if convErr != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, true, nil
}

func (s *Index) queryFailed(err error) ([]uint, bool, error) {
	if s.degrade {
		log.Printf("search index degraded, listing without search filter: %v", err)
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
}

// Close 关闭底层索引
func (s *Index) Close() error {
	return s.idx.Close()
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
