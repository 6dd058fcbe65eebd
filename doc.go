// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package fastfetch fornece as peças para montar jobs de extração de APIs
// autenticadas: um lote de tarefas é validado, executado em paralelo por um
// pool de workers e os registros resultantes são gravados em um ou mais sinks.
//
// Visão Geral:
// 1. Configuração (pkg/config, envloader): YAML do job carregado de arquivo,
// S3 ou DynamoDB, com injeção de ${env.X}, ${ssm./path} e ${secret.id}.
// 2. Credenciais (pkg/auth): bearer token buscado a cada chamada (variável de
// ambiente, SSM, Secrets Manager ou OAuth2 client credentials).
// 3. Execução (api): HTTPCaller e Executor, com paginação por offset.
// 4. Validação (pkg/event): catálogo de parâmetros obrigatórios por API.
// 5. Registros (pkg/records, pkg/rules): extração, flatten e projeção CEL.
// 6. Saída (pkg/sink): CSV, JSON, YAML, S3, Postgres, DynamoDB e Redis.
// 7. Entrada (pkg/transport, cmd/fetcher): CLI, HTTP, SQS e Lambda.
//
// Exemplo de Início Rápido:
//
//	# job.yaml
//	version: "1"
//	job:
//	  name: jira-issues
//	  runtime: local
//	credential:
//	  type: ssm
//	  name: /jira/token
//	validation:
//	  apis:
//	    issues:
//	      url: https://jira.example.com/rest/api/2/search
//	      required_params: [jql]
//	executor:
//	  workers: 8
//	  paging: {total_path: total}
//	output:
//	  records_path: issues
//	  flatten: true
//	  columns:
//	    - {name: key, expr: record.key}
//	    - {name: status, expr: 'record["fields.status.name"]'}
//	  sinks:
//	    - {type: csv, path: ./issues.csv}
//
//	$ echo '{"api_name": "issues", "jql": "project = OPS"}' | fetcher run -config job.yaml -event -
package fastfetch
