package github

// repositoryFields lists what is fetched for every repository. Keep it in
// sync with the field lists of the normalize package.
const repositoryFields = `
fragment repositoryFragment on Repository {
  name
  nameWithOwner
  homepageUrl
  isArchived
  isPrivate
  hasWikiEnabled
  hasIssuesEnabled
  pushedAt
  updatedAt
  createdAt
  mergeCommitAllowed
  squashMergeAllowed
  defaultBranch: defaultBranchRef {
    name
  }
  branchProtectionRules(first: 5) {
    nodes {
      pattern
      requiredApprovingReviewCount
      requiredStatusCheckContexts
      isAdminEnforced
    }
  }
  labels(first: $labelsFirst) {
    totalCount
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      name
    }
  }
  milestones(first: 10) {
    nodes {
      title
      state
      dueOn
      description
    }
  }
  codeOwners: object(expression: "HEAD:CODEOWNERS") {
    ... on Blob {
      text
    }
  }
  w3cJson: object(expression: "HEAD:w3c.json") {
    ... on Blob {
      text
    }
  }
  contributing: object(expression: "HEAD:CONTRIBUTING.md") {
    ... on Blob {
      text
    }
  }
  license: object(expression: "HEAD:LICENSE.md") {
    ... on Blob {
      text
    }
  }
  readme: object(expression: "HEAD:README.md") {
    ... on Blob {
      text
    }
  }
  codeOfConduct: object(expression: "HEAD:CODE_OF_CONDUCT.md") {
    ... on Blob {
      text
    }
  }
  preview: object(expression: "HEAD:.pr-preview.json") {
    ... on Blob {
      text
    }
  }
  travis: object(expression: "HEAD:.travis.yml") {
    ... on Blob {
      text
    }
  }
}
`

const repositoriesQuery = `
query ($login: String!, $first: Int!, $endCursor: String, $labelsFirst: Int!) {
  organization(login: $login) {
    repositories(first: $first, after: $endCursor) {
      pageInfo {
        endCursor
        hasNextPage
      }
      edges {
        node {
          ...repositoryFragment
        }
      }
    }
  }
}
` + repositoryFields

const repositoryQuery = `
query ($owner: String!, $name: String!, $labelsFirst: Int!) {
  repository(owner: $owner, name: $name) {
    ...repositoryFragment
  }
}
` + repositoryFields

const labelsQuery = `
query ($owner: String!, $name: String!, $first: Int!, $endCursor: String) {
  repository(owner: $owner, name: $name) {
    labels(first: $first, after: $endCursor) {
      pageInfo {
        endCursor
        hasNextPage
      }
      edges {
        node {
          name
        }
      }
    }
  }
}
`
