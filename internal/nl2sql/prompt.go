package nl2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderlens/orderlens/internal/query"
)

const SystemPrompt = "You are an advanced sql database expert"

var defaultColumns = []ColumnContext{
	{Name: "row_id", Type: "INTEGER", Samples: []string{"1", "2", "3", "4", "5"}},
	{Name: "order_id", Type: "INTEGER", Samples: []string{"3808", "487", "4080", "4868", "5251"}},
	{Name: "order_date", Type: "TEXT", Samples: []string{"2023-07-01"}},
	{Name: "product_category", Type: "TEXT", Samples: []string{"Apparel", "Cosmetics & Personal Care", "Groceries", "Toys & Games", "Electronics"}},
	{Name: "customer_name", Type: "TEXT", Samples: []string{"ElecHouse", "MobileMax", "AeroTechs", "ElegantEyes", "Cust-040"}},
}

// DefaultSchemaContext describes schema with the built-in column types and
// sample values of the orders dataset.
func DefaultSchemaContext(schema query.Schema) SchemaContext {
	known := make(map[string]ColumnContext, len(defaultColumns))
	for _, column := range defaultColumns {
		known[column.Name] = column
	}
	columns := make([]ColumnContext, 0, len(schema.Columns()))
	for _, name := range schema.Columns() {
		column, ok := known[name]
		if !ok {
			column = ColumnContext{Name: name, Type: "TEXT"}
		}
		column.Samples = append([]string(nil), column.Samples...)
		columns = append(columns, column)
	}
	return SchemaContext{TableName: schema.Table(), Columns: columns}
}

// LoadSchemaContext refreshes the sample values from the store. Columns whose
// sample query fails keep their built-in samples.
func LoadSchemaContext(ctx context.Context, engine query.Engine, schema query.Schema, samples int) SchemaContext {
	schemaContext := DefaultSchemaContext(schema)
	if engine == nil || samples <= 0 {
		return schemaContext
	}
	for i, column := range schemaContext.Columns {
		sqlText := fmt.Sprintf(
			"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL LIMIT %d",
			quoteIdent(column.Name), quoteIdent(schema.Table()), quoteIdent(column.Name), samples,
		)
		result, err := engine.Execute(ctx, sqlText)
		if err != nil || len(result.Rows) == 0 {
			continue
		}
		values := make([]string, 0, len(result.Rows))
		for _, row := range result.Rows {
			if len(row) == 0 {
				continue
			}
			values = append(values, fmt.Sprint(row[0]))
		}
		schemaContext.Columns[i].Samples = values
	}
	return schemaContext
}

// DDL renders the table as a CREATE TABLE statement with sample values as
// trailing comments.
func (s SchemaContext) DDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(s.TableName))
	for i, column := range s.Columns {
		separator := ","
		if i == len(s.Columns)-1 {
			separator = ""
		}
		fmt.Fprintf(&b, "%s %s%s-- Sample values like: [%s]\n",
			quoteIdent(column.Name), column.Type, separator, strings.Join(column.Samples, ", "))
	}
	b.WriteString(")")
	return b.String()
}

// BuildPrompt renders the user message for one question.
func BuildPrompt(schema SchemaContext, question string) string {
	table := schema.TableName
	return fmt.Sprintf(`### Task Description:
- You are to transform user-provided SQL schema information into a valid SQL query.
- Only convert input that describes schema components; respond with an error message for any non-schema related input.
- Identify relevant columns from varied input formats for query construction.
- Only adhere to the output format provided in the ### Output format section by only providing the executable sql query and no extra text.
- Do not use inverted commas on table name in the generated sql query.
- Handle the synonyms and typographical errors in user input. For example, Clothes is the same as Apparel in the product_category column.
- Always select the row_id column and the column names specified in the user query. Do not select any other extra column.
- Do not generate any query if the user input is empty or irrelevant.

Some examples:
    - User input: ['apparel product']
    - Sql Query: "SELECT row_id,product_category FROM %[1]s WHERE product_category = 'Apparel'"
    - User input: ['cosmetics']
    - Sql Query: "SELECT row_id,product_category FROM %[1]s WHERE product_category = 'Cosmetics & Personal Care'"
    - User input: "Show all orders placed on 2023-07-01 for Electronics."
    - Sql Query: "SELECT row_id,product_category,order_date FROM %[1]s WHERE order_date = '2023-07-01' AND product_category = 'Electronics';"
    - User input: "highest order id"
    - Sql Query: "SELECT row_id, MAX(order_id) FROM %[1]s"
    - User input: "Show all orders placed by MobileMax between 2023-06-01 and 2023-07-31."
    - Sql Query: "SELECT row_id,customer_name,order_date FROM %[1]s WHERE customer_name = 'MobileMax' AND order_date BETWEEN '2023-06-01' AND '2023-07-31';"
    - User input: "all orders except those for clothes and Groceries."
    - Sql Query: "SELECT row_id,product_category FROM %[1]s WHERE product_category NOT IN ('Apparel', 'Groceries');"
    - User input: ""
    - Sql Query: ""

### User Input:
Generate a SQL query that answers the question `+"`%[2]s`"+`.

### Schema
This query will run on a database whose schema is represented in this string:
%[3]s

### Task:
Construct a SQL query based on the provided user input that interacts with the above schema.

### Output format:
[Insert your SQL query here based on the user input and schema.]
`, table, strings.TrimSpace(question), schema.DDL())
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
